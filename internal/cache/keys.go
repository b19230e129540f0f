package cache

import "strings"

const (
	GlobalKeyPrefix = "aiteacher"
)

const (
	ServiceAuth        = "auth"
	ServicePerformance = "performance"
	ServiceLearning    = "learning"

	TypeSession = "session"
	TypeHistory = "history"
	TypeRecords = "records"
	TypeExplain = "explanation"
)

// GenerateCacheKey builds prefix:service:type:id, with any params joined by "_" as a final segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// AuthSessionKey is the hash holding a user's persisted token and profile.
func AuthSessionKey(userID string) string {
	return GenerateCacheKey(ServiceAuth, TypeSession, userID)
}

// HistoryKey caches a user's performance entries.
func HistoryKey(userID string) string {
	return GenerateCacheKey(ServicePerformance, TypeHistory, userID)
}

// RecordsKey holds a user's entries when the cache is the only store.
func RecordsKey(userID string) string {
	return GenerateCacheKey(ServicePerformance, TypeRecords, userID)
}

// ExplanationKey caches the agent's explanation of a topic, shared by all users.
func ExplanationKey(topic string) string {
	return GenerateCacheKey(ServiceLearning, TypeExplain, strings.ToLower(topic))
}

package redis

import "fmt"

// Key prefix for all exchange data
const keyPrefix = "buddy"

// exchangeKey holds the JSON-encoded exchange state; absent means open
func exchangeKey() string {
	return fmt.Sprintf("%s:exchange", keyPrefix)
}

// participantKey returns the Redis key for a Participant
func participantKey(name string) string {
	return fmt.Sprintf("%s:participant:%s", keyPrefix, name)
}

// participantIndexKey returns the SET of all participant names
func participantIndexKey() string {
	return fmt.Sprintf("%s:idx:participants", keyPrefix)
}

// exclusionsKey returns the SET of names excluded with name
func exclusionsKey(name string) string {
	return fmt.Sprintf("%s:exclusions:%s", keyPrefix, name)
}

func participantKeys(names []string) []string {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = participantKey(n)
	}
	return keys
}

func exclusionsKeys(names []string) []string {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = exclusionsKey(n)
	}
	return keys
}

package domain

import (
	"fmt"
	"strings"
)

// SplitReleaseKey splits a "<provider>:<release_id>" key back into its
// parts. Generalizes the teacher's private daemon helper
// `_split_release_key` into an explicit, testable function instead of a
// closure reached through a plugin's attribute access.
func SplitReleaseKey(key string) (Provider, string, error) {
	idx := strings.IndexByte(key, ':')
	if idx <= 0 || idx == len(key)-1 {
		return "", "", fmt.Errorf("malformed release key %q", key)
	}
	provider := Provider(key[:idx])
	switch provider {
	case ProviderMusicBrainz, ProviderDiscogs:
		return provider, key[idx+1:], nil
	default:
		return "", "", fmt.Errorf("unknown provider in release key %q", key)
	}
}

package store

import "fmt"

// DefaultNamespace prefixes every key written by a Cache.
const DefaultNamespace = "forensilog"

func ChunkCountKey(namespace string) string {
	return fmt.Sprintf("%s:chunks", namespace)
}

func ChunkKey(namespace string, index int) string {
	return fmt.Sprintf("%s:data:%d", namespace, index)
}

package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredName builds a collision resistant file name:
// <unix millis>-<16 hex chars>-<sanitized original name>.
func StoredName(originalName string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), random, sanitizeFileName(originalName))
}

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

// sanitizeFileName keeps the extension and reduces the rest to [a-z0-9-_].
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = strings.Trim(sanitizePathSegment(strings.ReplaceAll(base, " ", "-")), "-_")
	if base == "" {
		base = "file"
	}
	if ext = sanitizePathSegment(strings.TrimPrefix(ext, ".")); ext != "" {
		return base + "." + ext
	}
	return base
}

func objectKey(prefix string, obj Object) string {
	category := sanitizePathSegment(obj.Category)
	if category == "" {
		category = CategoryAttachment
	}
	return joinPrefix(prefix, path.Join(category, obj.Name))
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

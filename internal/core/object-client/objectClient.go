package objectclient

import (
	"path"
	"strings"
)

// objectKey joins the upload prefix and a file name into an S3 key.
func objectKey(prefix, name string) string {
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func contentType(name string) string {
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

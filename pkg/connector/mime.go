package connector

import (
	"path"
	"strings"
)

// DirectoryMime is the protocol's mime value for directories.
const DirectoryMime = "directory"

// mimeTypes covers the extensions a browser file manager meets daily.
// Everything else falls back to application/octet-stream.
var mimeTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/plain",
	".log":  "text/plain",
	".csv":  "text/csv",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// MimeOf returns the content type inferred from a file name's extension.
func MimeOf(name string) string {
	if mime, ok := mimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// matchesMime reports whether a mime type satisfies a filter, which may
// be a bare class ("image") or a full type ("text/plain").
func matchesMime(mime, filter string) bool {
	if filter == "" {
		return true
	}
	if strings.Contains(filter, "/") {
		return mime == filter
	}
	return strings.HasPrefix(mime, filter+"/")
}

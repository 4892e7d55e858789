package graph

import (
	"path/filepath"
	"strings"
)

// categoryByExt maps lowercase file extensions to presentation categories.
var categoryByExt = map[string]Category{
	// Images
	".png": CategoryImage, ".jpg": CategoryImage, ".jpeg": CategoryImage,
	".gif": CategoryImage, ".svg": CategoryImage, ".webp": CategoryImage,
	".bmp": CategoryImage, ".ico": CategoryImage, ".heic": CategoryImage,

	// Code
	".go": CategoryCode, ".js": CategoryCode, ".ts": CategoryCode,
	".tsx": CategoryCode, ".jsx": CategoryCode, ".py": CategoryCode,
	".rb": CategoryCode, ".rs": CategoryCode, ".c": CategoryCode,
	".h": CategoryCode, ".cpp": CategoryCode, ".java": CategoryCode,
	".css": CategoryCode, ".html": CategoryCode, ".sh": CategoryCode,
	".json": CategoryCode, ".yaml": CategoryCode, ".yml": CategoryCode,
	".toml": CategoryCode, ".sql": CategoryCode,

	// Video
	".mp4": CategoryVideo, ".mov": CategoryVideo, ".avi": CategoryVideo,
	".mkv": CategoryVideo, ".webm": CategoryVideo,

	// Audio
	".mp3": CategoryAudio, ".wav": CategoryAudio, ".flac": CategoryAudio,
	".ogg": CategoryAudio, ".m4a": CategoryAudio,

	// Documents
	".pdf": CategoryDocument, ".doc": CategoryDocument, ".docx": CategoryDocument,
	".xls": CategoryDocument, ".xlsx": CategoryDocument, ".ppt": CategoryDocument,
	".pptx": CategoryDocument, ".txt": CategoryDocument, ".md": CategoryDocument,
	".rtf": CategoryDocument, ".odt": CategoryDocument, ".epub": CategoryDocument,

	// Archives
	".zip": CategoryArchive, ".tar": CategoryArchive, ".gz": CategoryArchive,
	".bz2": CategoryArchive, ".xz": CategoryArchive, ".7z": CategoryArchive,
	".rar": CategoryArchive,
}

// Categorize returns the presentation category for a file name based on its
// extension. Unrecognized extensions map to CategoryUnknown.
func Categorize(name string) Category {
	ext := strings.ToLower(filepath.Ext(name))
	if c, ok := categoryByExt[ext]; ok {
		return c
	}
	return CategoryUnknown
}

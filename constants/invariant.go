package constants

const (
	// default admin password seeded into a fresh data.json
	DEFAULT_ADMIN_PASSWORD = "admin123"
	MIN_PASSWORD_LENGTH    = 6

	TIMESTAMP_FORMAT = "2006-01-02 15:04:05"

	MAX_VISITOR_LOGS = 100

	MAX_SESSIONS         = 256
	SESSION_TOKEN_LENGTH = 32

	CUSTOM_MODULE_PREFIX = "custom_"

	DATA_FILE  = "data.json"
	STATS_FILE = "stats.json"
	FILES_FILE = "files.json"
)

// BUILT_IN_MODULES are the always-available page sections. They have no
// entry in the modules map, only a position in the order list.
var BUILT_IN_MODULES = []string{"hero", "skills", "projects", "files"}

// ALLOWED_IMAGE_EXTENSIONS gates avatar, background, and generic image uploads.
var ALLOWED_IMAGE_EXTENSIONS = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
}

// ALLOWED_CURSOR_EXTENSIONS gates custom cursor uploads.
var ALLOWED_CURSOR_EXTENSIONS = map[string]bool{
	"cur": true, "png": true, "svg": true, "ico": true,
}

// ALLOWED_FILE_EXTENSIONS gates uploads into the downloadable file registry.
var ALLOWED_FILE_EXTENSIONS = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "txt": true, "zip": true,
	"rar": true, "mp4": true, "mp3": true, "avi": true, "mkv": true,
	"xlsx": true, "xls": true, "ppt": true, "pptx": true, "png": true,
	"jpg": true, "jpeg": true, "gif": true, "webp": true, "bmp": true,
	"svg": true,
}

package cache

// UserDataDir is the application's per-user data directory below the install root.
const UserDataDir = "User Data"

// DefaultDirs are the cache directories below UserDataDir that are safe to remove.
var DefaultDirs = []string{"Cache", "Shadow_Cache", "Smart_Crop"}

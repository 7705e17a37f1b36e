package config

import "strings"

// AppVersion is the version of the application, set at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "Wallpaperio"

// AppDirName is the folder name used for the catalog.
var AppDirName = strings.ToLower(AppName)

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// Log rotation limits for release builds.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
)

// DefaultSourceURL is the page the photo of the day is resolved from.
const DefaultSourceURL = "https://www.nationalgeographic.com/photography/photo-of-the-day/"

// ControlAPIAddr is the loopback address of the local control API.
const ControlAPIAddr = "127.0.0.1:49452"

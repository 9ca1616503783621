package configs

// AppVersion 构建时可通过 -ldflags "-X" 覆盖.
var AppVersion = "0.1.0"

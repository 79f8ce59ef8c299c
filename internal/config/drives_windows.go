//go:build windows

package config

func defaultDrives() []string { return []string{`C:\`, `D:\`} }

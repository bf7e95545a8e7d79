// Command notify-center is a terminal client for project-management
// notifications.
//
// Usage:
//
//	notify-center                 open the interactive bell and center views
//	notify-center unread          print the unread count
//	notify-center list --limit 20 print recent notifications
//	notify-center read 12 13      mark notifications read
//
// Configuration is read from ~/.config/notifycenter/config.yaml unless
// --config is given; NOTIFY_CENTER_* environment variables override it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(defaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package cli provides blogctl, the command-line client of the blog API.
//
// A command given on the command line runs once:
//
//	blogctl -a http://127.0.0.1:5000 list
//	blogctl get <id>
//
// Without a command an interactive prompt starts. The bearer token obtained
// by register or login is kept in a local SQLite file, so both modes share
// the session across runs.
//
// Commands: register, login, logout, me, list [featured], get <id>,
// save <id> <file>, post, update <id>, delete <id>, help, exit.
package cli

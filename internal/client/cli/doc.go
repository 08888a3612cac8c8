// Package cli provides the tripauth command-line client.
//
// The cobra command tree offers one-shot commands (register, login,
// whoami, logout) and an interactive shell. Login state lives in the local
// session file, so a token obtained by "login" is picked up by later
// commands and by the shell on start.
package cli

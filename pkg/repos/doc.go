// Package repos turns the configured repo list plus each working copy's
// .dotsync.toml into the plain RepoConfig values the overlay consumes.
//
// The distinction between repo kinds (plain folder, git working copy) lives
// entirely here, behind the Source capability interface: the rest of
// dotsync only ever asks for the working copy root.
package repos

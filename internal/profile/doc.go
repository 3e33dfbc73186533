// Package profile locates Brave browser profile directories, probes the
// browser's singleton lock before any store access, and provides the file
// collaborators (read, write, backup, safe-copy) consumed by the migration
// pipeline. All file access goes through an afero.Fs so the pipeline can be
// exercised against an in-memory filesystem in tests.
package profile

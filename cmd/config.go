package cmd

const DESCRIPTION = `
BraveVault migrates a Brave browser profile (passwords, history,
bookmarks, preferences) between machines and operating systems.
Stored passwords are decrypted with the source machine's OS key,
re-encrypted under a passphrase of your choosing for transport,
and re-encrypted again under the destination machine's OS key on
import. Plaintext credentials never touch the disk.
`

const (
	ExportDescription = `The export command reads the local Brave profile and writes
a passphrase-protected package file. Close Brave before running.

If no passphrase is given, a random one is generated and shown
once; without it the package cannot be opened.

Example:
        bravevault export --output brave.bvault
        bravevault export --output brave.bvault --no-history

`
	ImportDescription = `The import command merges a package file into the local Brave
profile. Close Brave before running.

Existing credentials are never overwritten: records already
present are skipped, and records with a different stored password
are reported as conflicts. The credential store is backed up
before the merge and restored if anything fails.

Example:
        bravevault import --input brave.bvault

`
	InspectDescription = `The inspect command prints the cleartext header of a package
file: format version, creation time, and contained data kinds.
No passphrase is needed and nothing is decrypted.

Example:
        bravevault inspect --input brave.bvault

`
)

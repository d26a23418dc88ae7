// Package textutil provides file-name helpers shared by the archive codec and
// the export commands.
//
// Archive keys and exported file names are derived from user-visible image
// names, which may arrive in any Unicode normalization form and may contain
// characters that are unsafe on one platform or another. The helpers here
// normalize names to NFC and strip or replace the unsafe characters.
package textutil

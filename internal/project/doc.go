// Package project manages the unpacked project layout on disk: the
// originals/ and masks/ directories, the project.json metadata file, and
// flattened PNG exports of rendered pages.
package project

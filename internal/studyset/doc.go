// Package studyset defines the chapter data model and its persistence codecs.
//
// A StudySet is a titled, ordered list of Chapters. The package converts it to
// and from the indented JSON used for document files, the percent-encoded
// chapter array carried in the study page's data URL parameter, and the
// loosely shaped JSON emitted by text-processing backends.
//
// Decoding never fails loudly: malformed input reports "no data" through a
// boolean so callers can fall back to sample content.
//
// Document is the explicit handle for the current study set of one
// front-end; there is no package-level current document.
package studyset

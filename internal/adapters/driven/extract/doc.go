// Package extract provides page extractors for the supported document
// formats. Extractors are selected by filename extension; each returns
// the document as an ordered sequence of non-empty plain-text pages.
package extract

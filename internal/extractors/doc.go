// Package extractors provides implementations of the TextExtractor
// interface for the supported document formats. Each extractor knows how
// to turn one file type's raw bytes into normalised text.
//
// Extractors are registered with the Registry at startup.
package extractors

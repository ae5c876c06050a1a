// Package ocr reads meme captions by template matching instead of a trained
// OCR engine.
//
// A Library holds one binary template per character, rasterised from a
// TrueType font (the embedded Go Bold face by default) or loaded from a
// directory of <char>.png bitmaps. Matcher scales every template onto a
// region's bounding box and counts agreeing pixels, producing a normalized
// CandidateList per region. Resolver turns the assembled lines into words
// and, for words missing from the WordSet, tries lower ranked candidates
// until a dictionary word appears or the candidates run out.
//
// # Pipeline
//
// Recognizer ties the stages together:
//
//  1. Threshold the image to white ink on black
//  2. Segment regions from the top and bottom strips
//  3. Match every region against the library, in parallel
//  4. Assemble lines with space and punctuation tokens
//  5. Resolve words and drop lines that look like noise
//
// # Candidate Scores
//
// Raw scores are signed pixel agreement counts. Normalize divides them by
// the best score and truncates to three decimals, so the top candidate is
// always 1.0 unless nothing scored above zero.
//
// # Correction Search
//
// Alternates are tried best score first and only while their score is at
// least the acceptance threshold (0.8 by default). Each step tests the
// combinations that include the newest alternate, keeping every region's
// original character as an option, and MaxCombinations caps a single step.
//
// # Error Handling
//
// Only RESOURCE_UNAVAILABLE errors (a missing font, glyph bitmap or image)
// and context cancellation leave Recognize. DEGENERATE_INPUT yields an
// empty caption, and BUDGET_EXCEEDED and NO_DICTIONARY_MATCH are logged at
// debug level and recovered locally.
package ocr

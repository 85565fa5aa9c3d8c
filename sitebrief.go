// Package sitebrief extracts a structured brand brief from an arbitrary
// web page: entity name, positioning statement, key messages, target
// audience, personality traits, and a dominant color palette. Pages may be
// unreachable, slow, script-rendered, or misleading, so the pipeline is
// built around ordered retrieval fallbacks, confidence-gated semantic
// extraction, and strict validation of everything the inference service
// returns.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, gemini/); the
// orchestration lives in scan/.
package sitebrief

// Package model defines the provider-agnostic abstractions for streaming text
// generation inside Agora.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Construct concrete provider models from run configuration via a Factory,
//     surfacing configuration mistakes as user-presentable errors
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic, OpenAI-compatible local endpoints)
// implement the Model interface from this package so the simulation runner
// remains decoupled from vendor SDKs.
package model

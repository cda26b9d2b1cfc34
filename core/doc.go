// Package core provides the foundational domain types used by Agora. It
// defines the core abstractions for:
//
//   - Run configuration (RunConfig, AgentSpec, AuxiliarySpec)
//   - Transcripts (append-only, the authoritative history of a run)
//   - Events (immutable fan-out records: status, token, message, error)
//   - The error taxonomy separating user-presentable failures from
//     internal diagnostics
//
// The package intentionally keeps implementation concerns (scheduling,
// transports, provider SDKs) out of scope, exposing small types that the
// sim, prompt, bus and model packages build on.
package core

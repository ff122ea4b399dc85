// Package apiclient provides a typed client for the authentication backend.
//
// Every backend operation is exposed as a single-purpose method returning a
// typed payload or a classified error. Bearer tokens are attached from the
// configured credential store on every request, and any 401 response fires
// the unauthorized handler exactly once per response — a cross-cutting
// interceptor, not per-call logic — so the session controller can evict the
// session no matter which call observed the expiry.
//
// Errors are classified per the client's taxonomy: rejections (backend
// declined credentials or a code), unauthorized (session expiry),
// transport failures (no response at all) and malformed responses. Use
// IsRejection, IsUnauthorized and IsTransport to branch, and UserMessage to
// obtain a display string safe to surface in a form.
package apiclient

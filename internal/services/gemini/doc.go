// Package gemini implements the metadata.Provider interface on top of
// the Google Gemini API.
//
// Like the OpenRouter client the Gemini client is single-shot; the
// metadata generator owns retries and cooldowns. Failures map onto the
// services error taxonomy, including the HTTP 400 the API returns for
// an invalid key.
//
// Converted media small enough to inline is attached to the request as
// a blob, so the model describes the actual image or clip rather than
// just the taxonomy context. The response is requested as JSON via the
// model's response MIME type.
//
// # Configuration
//
// metadata.provider = "gemini" selects this client. api_key is
// required; model defaults to gemini-2.0-flash.
package gemini

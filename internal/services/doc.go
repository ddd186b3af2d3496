// Package services defines the [Catalog] interface for the remote music catalog and implements it for the Spotify Web API.
//
// # Catalog Interface
//
// The resolvers in the tasks package depend only on [Catalog], so tests can swap in a fake
// and the HTTP details stay in this package.
//
// # Spotify Implementation
//
// [SpotifyCatalog] issues search and artist lookups against the Web API. Every request:
//   - waits on a [rate.Limiter] shared by the catalog
//   - carries a bearer token obtained from an [AccessTokens] provider
//   - on 401 or 400, refreshes the token and re-issues the same request, at most MaxAuthRetries times
//
// # Token Provider
//
// [TokenProvider] owns the process-wide access token. Tokens come from the OAuth2 client
// credentials grant ([clientcredentials.Config]). Concurrent refreshes are collapsed with
// [singleflight.Group], so callers that observe the same rejected token wait on one token request.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client identity not configured
//   - [shared.ErrAuthFailed] : catalog rejected the token after the bounded retry
//   - [shared.ErrRefreshFailed] : token endpoint failure
//   - [shared.ErrNetwork] : transport or decode failure
//   - [shared.ErrAPIRequest] : any other non-2xx response
package services

// Package fetcher performs the single blocking HTTP GET that feeds the
// check pipeline.
//
// A Fetcher carries a fixed client identity (User-Agent) and fixed timeout
// budget decided at construction: a connect timeout on the dialer and an
// overall deadline on the client. There are no retries; one check means one
// request, and failure handling belongs to the caller, which isolates it per
// site.
//
// Response bodies are size-capped and transcoded to UTF-8 based on the
// response's declared charset, so the normalizer downstream always sees
// UTF-8 text regardless of how the origin encodes its pages.
//
// For .onion targets the fetcher can route through a running Tor daemon's
// SOCKS5 port via WithSOCKSProxy. Only the proxy connectivity is handled
// here; daemon lifecycle is the operator's business.
package fetcher

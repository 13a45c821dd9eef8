// Package msgraph is a minimal Microsoft Graph client for sending mail as an
// application (client-credentials flow, Mail.Send permission).
//
// Only the sendMail action is implemented:
//
//	POST {base}/users/{sender}/sendMail
//
// Tokens come from a TokenProvider; ClientCredentials acquires them from the
// Microsoft identity platform, optionally caching until expiry.
package msgraph

// Package portal is a single user web client for the school REST API.
//
// Session:
//   - SessionStore owns the one credential slot of the process and is the
//     only component that talks to Storage. Storage failures are swallowed:
//     a failed read is an absent credential, a failed write keeps the old one.
//   - AuthContext derives Anonymous or Authenticated from the store on every
//     Login and Logout and notifies subscribers synchronously on change.
//   - DecodeCredential reads the subject and names out of the credential
//     without checking its signature. The result is display data only.
//
// HTTP:
//   - RouteGuard redirects anonymous requests for protected pages to the
//     login view and remembers where the user was going.
//   - RegisterPortalRoutes mounts the login, registration and student pages
//     on a fiber router. Pages render embedded django templates.
package portal

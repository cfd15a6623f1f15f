// Package mailbox is a client for the transactional-email capture service
// used to verify asynchronous notification delivery.
//
// The application under test sends email notifications through a capture
// inbox instead of a real mail provider. This client lists the inbox over
// the capture service's REST API, filters client-side for a recipient and an
// exact subject, and fetches message bodies in their text or HTML variant.
//
// Because mail delivery is eventually consistent, WaitForMessage polls the
// inbox through probe.Poll with a configurable attempt budget and interval
// (default 10 attempts, 10 seconds apart). Recipient matching is by
// containment, not equality, so plus-addressed recipients such as
// "reports+run42@example.com" are found when searching for the full
// plus-addressed form.
package mailbox

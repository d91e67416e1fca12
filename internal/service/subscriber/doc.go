// Package subscriber implements the newsletter subscriber lifecycle:
// filtered listing, creation with a duplicate-conflict path, edits,
// soft/hard deletion, and the send-time bookkeeping counters.
package subscriber

// Package notifier delivers alert texts to the messaging sink.
//
// # Contract
//
// Deliver makes exactly one attempt per message. Failures come back as
// *DeliveryError and the caller decides what to do; there is no queue and no
// retry, the next scheduled run is the retry.
//
// # Pacing
//
// Sends are paced with a token bucket so a burst of due events does not trip
// Telegram's per-chat flood limits.
//
// # History
//
// For debugging and operator visibility, the service keeps a small in-memory
// history of recently delivered messages.
package notifier

/*
Package telegram implements the transport port against the Telegram Bot
API with plain HTTP, plus a getUpdates long-poll loop and webhook update
decoding. Only the API surface the engine consumes is modelled.
*/
package telegram

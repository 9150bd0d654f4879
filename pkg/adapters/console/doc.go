/*
Package console implements the transport port against a local terminal
for developing flows without a bot token. Inline keyboards become
numbered lists and typing the number presses the button.
*/
package console

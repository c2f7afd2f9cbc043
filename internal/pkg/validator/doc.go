// Package validator wraps go-playground/validator with English messages and
// the "mailbox" rule, which accepts exactly one bare address and rejects
// display names, comments and quoted forms that net/mail would rewrite.
package validator

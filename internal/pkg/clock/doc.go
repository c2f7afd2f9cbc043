// Package clock abstracts the time source behind OTP expiry.
//
// Issue and verify read the time through Clocker so expiry deadlines can be
// exercised without sleeping: production wiring uses TimeClocker and tests
// drive a Manual clock across the deadline.
package clock

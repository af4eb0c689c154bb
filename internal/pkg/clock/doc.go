// Package clock hides time.Now behind Clocker so expiry rules can run against
// a Manual clock in tests.
package clock

// Package owners resolves which packages a user maintains from the
// packaging service's owner-alias document.
package owners

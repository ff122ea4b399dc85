// Package nav abstracts view navigation for the authentication flows.
//
// The protocol core decides where the user goes next (login after logout,
// dashboard after a verified login, profile after a 2FA reconfiguration) but
// does not own any rendering. Hosts implement Navigator over whatever
// surface they drive; Recorder is the in-memory implementation used by the
// terminal client and by tests.
//
// Messages passed alongside a navigation are one-shot: the destination view
// consumes them once (e.g. the login page's "2FA has been set up, please
// log in" banner) and they are gone.
package nav

package nav

// Route identifies a view within the host application.
type Route string

const (
	RouteLogin     Route = "/login"
	RouteRegister  Route = "/register"
	RouteDashboard Route = "/dashboard"
	RouteProfile   Route = "/profile"
	RouteVerify    Route = "/verify-2fa"
	RouteReset     Route = "/reset-password"
)

// Severity classifies a one-shot message for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Message is a one-shot notice delivered to the destination view of a
// navigation, consumed exactly once.
type Message struct {
	Text     string
	Severity Severity
}

// Navigator moves the user between views. Implementations must be safe for
// concurrent use: the 401-eviction path can fire from any in-flight call.
type Navigator interface {
	// Current reports the route the user is on right now.
	Current() Route
	// GoTo navigates to the given route.
	GoTo(route Route)
	// GoToWithMessage navigates and leaves a one-shot message for the
	// destination view.
	GoToWithMessage(route Route, msg Message)
}

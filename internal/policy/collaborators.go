package policy

//go:generate mockgen -source=collaborators.go -destination=mocks/mocks.go -package=mocks Settings,Subsystem

// Settings is the settings-query capability the registry delegates policy
// flags to.
//
// Implementations must be non-blocking and must not call back into the
// registry: every method is invoked while the registry lock is held.
// Unavailable values should read as false rather than fail.
type Settings interface {
	// HideIdleFromPrivilegedApp reports whether idle state is hidden from
	// the privileged app.
	HideIdleFromPrivilegedApp() bool

	// UnrestrictedNetworkWhileIdle reports whether network access stays
	// unrestricted during idle.
	UnrestrictedNetworkWhileIdle() bool

	// AggressiveIdleEnabled reports whether aggressive idle is requested.
	AggressiveIdleEnabled() bool

	// ExtremeIdleEnabled reports whether extreme idle is requested.
	ExtremeIdleEnabled() bool
}

// Subsystem is an external manager bound at Initialize. The registry only
// holds the reference so other components can reach it through one handle.
type Subsystem interface {
	Name() string
}

// Collaborators is the set of external references bound at Initialize.
// Any field may be nil.
type Collaborators struct {
	Actions     Subsystem
	Bluetooth   Subsystem
	Telephony   Subsystem
	Torch       Subsystem
	Sensors     Subsystem
	AppProfiles Subsystem
	DevProfiles Subsystem

	Settings Settings
}

// names returns the names of the bound subsystems in declaration order.
func (c Collaborators) names() []string {
	var out []string
	for _, s := range []Subsystem{
		c.Actions, c.Bluetooth, c.Telephony, c.Torch,
		c.Sensors, c.AppProfiles, c.DevProfiles,
	} {
		if s != nil {
			out = append(out, s.Name())
		}
	}
	return out
}

// NamedSubsystem is a Subsystem that is only a name. Hosts that have not
// wired a real manager yet use it as a placeholder.
type NamedSubsystem string

// Name implements Subsystem.
func (n NamedSubsystem) Name() string {
	return string(n)
}

// PlaceholderCollaborators binds every subsystem to a NamedSubsystem and
// delegates policy flags to settings.
func PlaceholderCollaborators(settings Settings) Collaborators {
	return Collaborators{
		Actions:     NamedSubsystem("actions"),
		Bluetooth:   NamedSubsystem("bluetooth"),
		Telephony:   NamedSubsystem("telephony"),
		Torch:       NamedSubsystem("torch"),
		Sensors:     NamedSubsystem("sensors"),
		AppProfiles: NamedSubsystem("app_profiles"),
		DevProfiles: NamedSubsystem("dev_profiles"),
		Settings:    settings,
	}
}

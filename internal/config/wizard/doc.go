// Package wizard provides the interactive configuration wizard behind
// `etcdnode init`.
//
// RunWizard asks for the cluster membership and the optional host features
// using charmbracelet/huh forms and returns a WizardResult. BuildConfig
// turns the answers into a validated config.Config and WriteConfig writes
// it as YAML, leaving out every value that equals its default.
package wizard

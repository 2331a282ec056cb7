// Package staged implements a staged dependency-injection container.
//
// A declarative Module of Bindings, together with a set of root Keys and
// an Activation, is handed to a Planner, which computes an execution Plan
// before any user code runs. A Producer then executes the Plan against an
// optional parent Locator, materialising a graph of singletons. Planning
// catches misconfiguration -- missing dependencies, cycles, conflicting or
// axis-inconsistent bindings -- before any constructor is invoked.
package staged

/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object stored under the "_c:<pkg>"
key. Configuration is loaded from the "conf" section of the genesis file with
InitConfig and can be changed later by its owner via
UpdateConfigurationHandler.
*/
package gconf

/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object, stored under the
"_c:<package name>" key. Configuration is loaded from the "conf" section of
the genesis file and validated before it is saved.

*/
package gconf

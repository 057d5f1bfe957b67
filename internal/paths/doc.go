// Package paths resolves where rx keeps its files, using
// github.com/adrg/xdg for the base directories:
//
//	user config     <XDG_CONFIG_HOME>/rx/config.yaml
//	project config  ./rx.yaml
//	type libraries  <XDG_DATA_HOME>/rx/library/
package paths

// Package overlay merges the active dots subdirectories of every enabled
// repo into a single mapping from home directory targets to the source
// files that own them.
//
// Repos are applied in rank order and subdirectories in activation order;
// a later emission for the same target replaces an earlier one. Resolution
// reads only the repo trees it is given and keeps no state between calls.
package overlay

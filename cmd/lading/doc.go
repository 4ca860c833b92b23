// Command lading reconciles CSV manifests against a pool of physical files,
// moving complete sets into the destination tree and reporting what is
// missing or in conflict.
package main

/*
Package x contains the extensions that make up the application, along with
the interfaces they share. Each subpackage provides the models, messages
and handlers of a single module.
*/
package x

/*
Package gconf stores the configuration of extensions.

Each extension keeps a single configuration record in the database, under
the key

	_c:<package name>

The record is created from the genesis file with InitConfig, which refuses
to overwrite an existing record. Handlers that are allowed to change the
configuration later (for example a committee update) use Save directly.
*/
package gconf

/*
Package roles stores role membership.

Privileged operations of other extensions require the signer to hold a role,
for example pool_manager to create royalty pools. Roles are assigned in the
genesis file and later granted or revoked by holders of the admin role.
*/
package roles

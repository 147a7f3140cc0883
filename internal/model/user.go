package model

// User represents a row in the `user` table.  PasswordHash holds the bcrypt
// digest and must never leave the service; handlers copy the public fields
// into their own response types.
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – user.first_name.
//  LastName     – user.last_name.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password (user.pw).
//  Permissions  – privilege level; 0 is a standard customer, 1 and above may
//                 manage the catalog.
type User struct {
    ID           uint64 // user.id
    FirstName    string // user.first_name
    LastName     string // user.last_name
    Username     string // user.username
    PasswordHash string // user.pw
    Permissions  int    // user.user_permissions
}

// PermissionStandard is the level assigned on registration.
const PermissionStandard = 0

// PermissionCatalogAdmin is the minimum level allowed to add categories and
// products.
const PermissionCatalogAdmin = 1

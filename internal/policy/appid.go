package policy

// PerUserRange is the number of uids reserved for each user profile.
// A uid encodes (userID, appID) as userID*PerUserRange + appID.
const PerUserRange = 100000

// Unbound is the uid stored in a binding that has not been resolved.
const Unbound = -1

// AppID returns the per-app component of uid.
//
// The result uses Go's truncated remainder, so negative uids map to negative
// app IDs: AppID(-1) == -1. No special case is made for Unbound.
func AppID(uid int) int {
	return uid % PerUserRange
}

// UserID returns the user profile component of uid.
func UserID(uid int) int {
	return uid / PerUserRange
}

// UID composes a uid from a user profile and an app ID.
func UID(userID, appID int) int {
	return userID*PerUserRange + appID%PerUserRange
}

// IsSameApp reports whether two uids belong to the same app, possibly under
// different user profiles.
func IsSameApp(uid1, uid2 int) bool {
	return AppID(uid1) == AppID(uid2)
}

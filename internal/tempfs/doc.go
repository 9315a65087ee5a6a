// Package tempfs owns every on-disk scratch file created while converting a
// request.
//
// Manager hands out uniquely named temp files and directories scoped to a
// callback and removes them on every exit path, including errors and panics.
// Sweeper reclaims entries carrying the manager's prefix that outlived their
// request, such as those left behind by a crashed process.
package tempfs

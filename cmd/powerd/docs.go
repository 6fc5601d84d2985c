package main

// General API documentation for swaggo. Regenerate with swag if routes change.
//
// @title           powerd API
// @version         1.0
// @description     HTTP API for household power draw prediction serving.
//
// @contact.name   powerd maintainers
// @contact.url    https://github.com/your-org/powerd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

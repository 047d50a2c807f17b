package integration_test

const (
	dbName         = "afisha"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
	mongoImageName = "mongo:7"
	mysqlImageName = "mysql:8.4"

	seedFile = "../repository/testdata/films.json"

	// Films and sessions from the seed file
	ArchivesFilmID      = "0e33c7f6-27a7-4aa0-8e61-65d7e5effecf"
	ArchivesMorningID   = "5beec101-acbb-4158-adc6-d855716b44a8"
	ArchivesAfternoonID = "f2e429b0-685d-41f8-a8cd-1d8cb63b99ce"
	SandsFilmID         = "51b4bc85-646d-47fc-b988-3e7051a9fe9e"
	SandsEveningID      = "3d5ea7ee-1be1-4c78-9ae5-8b5f8e0ac6f6"

	TestCustomerEmail = "guest@example.com"
	TestCustomerPhone = "+7 900 000-00-00"
)

package main

// @title PawPals API
// @version 1.0
// @description Backend de PawPals: perfiles de perros, posts, usuarios cercanos, saludos y meetups.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	Execute()
}

package docs

// @title           Taxi KPI Service API
// @version         1.0
// @description     Computes monthly KPIs from the NYC TLC yellow taxi trip records and serves the aggregate dashboard.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an admin JWT (see -issue-token).

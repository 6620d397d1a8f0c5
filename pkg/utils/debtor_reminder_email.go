package utils

import "fmt"

func SendDebtorReminderEmail(to, firstName, amount, apartmentName string) error {
	subject := fmt.Sprintf("💰 Reminder: you owe %s in '%s'", amount, apartmentName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Balance Reminder</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f6f8f7;
			margin: 0;
			padding: 0;
			color: #333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #d9534f;
		}
		.header {
			background-color: #d9534f;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
			font-size: 14px;
			line-height: 1.6;
			color: #444;
		}
		.amount-box {
			background: #fff6f6;
			border: 1px solid #f1c1c1;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
			font-size: 20px;
			font-weight: 700;
			color: #d9534f;
		}
		.footer {
			text-align: center;
			font-size: 12px;
			color: #999;
			padding: 14px;
		}
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Outstanding balance</h1></div>
			<div class="content">
				<p>Hi %s,</p>
				<p>Your current balance in <strong>%s</strong> shows you still
				owe your roommates:</p>
				<div class="amount-box">%s</div>
				<p>Record a settlement in RoomLedger once you have paid up.</p>
			</div>
			<div class="footer">You receive this because your apartment balance is negative.</div>
		</div>
	</body>
	</html>
	`, firstName, apartmentName, amount)

	return SendEmail(to, subject, body)
}
